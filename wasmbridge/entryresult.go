package wasmbridge

import "encoding/json"

type entryResultJSON struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ParseEntryResult parses the NUL-terminated byte string a WASM
// module's entry function returns a pointer to. If raw parses as a
// JSON object `{"code": int, "message": string}`, that code and
// message are returned verbatim; otherwise raw is treated as a plain
// message with code -1.
func ParseEntryResult(raw []byte) (code int, message string) {
	var parsed entryResultJSON
	if err := json.Unmarshal(raw, &parsed); err == nil {
		return parsed.Code, parsed.Message
	}
	return -1, string(raw)
}
