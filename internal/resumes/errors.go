package resumes

import "errors"

var (
	ErrNotFound    = errors.New("resume not found")
	ErrRateLimited = errors.New("upload limit reached")
)
