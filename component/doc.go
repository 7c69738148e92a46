// Package component defines the lifecycle interface shared by the
// subsystems an Environment owns (its KV store and its telemetry
// providers).
//
// Components are started in registration order and stopped in reverse
// order by Registry; Environment registers its components once, at
// construction, and calls StartAll/StopAll from its Start and Stop.
package component
