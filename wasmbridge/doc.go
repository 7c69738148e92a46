// Package wasmbridge defines the host-import shape a WASM actor module
// links against, and the protocol for parsing its entry function's
// result. It does not execute WASM: the module's own store, instance,
// and memory are supplied by an external host (e.g. wazero), which
// wires Host's methods into its import object under the names listed
// in ImportNames.
package wasmbridge
