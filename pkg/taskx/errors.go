package taskx

import "github.com/openhire/openhire/pkg/errx"

var taskxErrors = errx.NewRegistry("TASKX")

var (
	ErrTaskNotFound   = taskxErrors.Register("TASK_NOT_FOUND", errx.TypeNotFound, 404, "Task not found")
	ErrEnqueueFailed  = taskxErrors.Register("ENQUEUE_FAILED", errx.TypeExternal, 500, "Failed to enqueue task")
	ErrAlreadyRunning = taskxErrors.Register("ALREADY_RUNNING", errx.TypeConflict, 409, "Worker pool already running")
)
