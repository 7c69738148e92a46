package runtime

// FdKind selects how a standard descriptor is opened by default, and what
// a per-node FdOverrides entry may redirect it to.
type FdKind string

const (
	FdInput  FdKind = "input"
	FdOutput FdKind = "output"
	FdPrint  FdKind = "print"
	FdEnv    FdKind = "env"
)

// Standard descriptor numbers, per spec.
const (
	FdStdin   = 0
	FdStdout  = 1
	FdLog     = 2
	FdEnvFd   = 3
	FdMetrics = 4
	FdTrace   = 5
)

var defaultKind = map[int]FdKind{
	FdStdin:   FdInput,
	FdStdout:  FdOutput,
	FdLog:     FdPrint,
	FdEnvFd:   FdEnv,
	FdMetrics: FdOutput,
	FdTrace:   FdOutput,
}

var defaultSlot = map[int]string{
	FdStdin:   "",
	FdStdout:  "",
	FdLog:     "log",
	FdEnvFd:   "env",
	FdMetrics: "metrics",
	FdTrace:   "trace",
}

// FdOverrides redirects a subset of a node's standard descriptors to a
// different FdKind, e.g. {FdMetrics: FdPrint} to watch metrics live on
// stdout during development.
type FdOverrides map[int]FdKind
