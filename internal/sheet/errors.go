package sheet

import "errors"

// Storage keys.
const (
	RowsKey    = "spreadsheet-data"
	SessionKey = "current-user"
)

// Error variables for sheet operations.
var (
	ErrRowNotFound         = errors.New("row not found")
	ErrJobRequestRequired  = errors.New("job request is required")
	ErrInvalidChoice       = errors.New("invalid choice")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrLoginFieldsRequired = errors.New("email and name are required")
	ErrUnknownQuickLogin   = errors.New("unknown quick login")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrNotCreator          = errors.New("only the creator can change the status")
	ErrNoEdit              = errors.New("no edit in progress")
	ErrCellOutOfRange      = errors.New("cell out of range")
	ErrCorruptRows         = errors.New("stored rows are corrupt")
	ErrCorruptSession      = errors.New("stored session is corrupt")
	ErrUnknownSortOrder    = errors.New("unknown sort direction")

	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataDirEmpty       = errors.New("data_dir cannot be empty")
	ErrInvalidStorage     = errors.New("storage must be one of file, sqlite, redis, memory")
	ErrInvalidLogLevel    = errors.New("log_level must be one of debug, info, warn, error")
	ErrInvalidLoginDelay  = errors.New("login_delay must be a non-negative duration")
	ErrRedisURLRequired   = errors.New("redis_url is required for redis storage")
)
