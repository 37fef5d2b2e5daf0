package exitcode

const (
	Success        = 0
	UsageError     = 1
	ConfigError    = 2
	FetchError     = 3
	TransformError = 4
	CombineError   = 5
	DBConnError    = 6
	LoadError      = 7
	PartialSuccess = 8
	ServeError     = 9
)
