package pipe

import "strings"

// DerivePath computes the kv store path for a (node, slot) pair:
//   - slot == ""         -> node
//   - slot has no '/'    -> node + "-" + slot
//   - slot contains '/'  -> slot, used verbatim as an absolute kv path
func DerivePath(node, slot string) string {
	if slot == "" {
		return node
	}
	if strings.Contains(slot, "/") {
		return slot
	}
	return node + "-" + slot
}
