// Package notify defines the background email tasks the board sends and
// wires their handlers into the taskx worker.
package notify

import (
	"context"
	"encoding/json"

	"github.com/openhire/openhire/pkg/logx"
	"github.com/openhire/openhire/pkg/notifx"
	"github.com/openhire/openhire/pkg/taskx"
)

const (
	// Queue carries all notification emails.
	Queue = "notifications"

	TaskApplicationReceived = "email:application_received"
	TaskStatusChanged       = "email:application_status_changed"
)

// ApplicationReceivedPayload notifies the employer of a new application.
type ApplicationReceivedPayload struct {
	EmployerEmail string `json:"employer_email"`
	EmployerName  string `json:"employer_name"`
	CandidateName string `json:"candidate_name"`
	JobTitle      string `json:"job_title"`
	ApplicationID string `json:"application_id"`
}

// StatusChangedPayload notifies the candidate of a transition.
type StatusChangedPayload struct {
	CandidateEmail string `json:"candidate_email"`
	CandidateName  string `json:"candidate_name"`
	JobTitle       string `json:"job_title"`
	NewStatus      string `json:"new_status"`
	ApplicationID  string `json:"application_id"`
}

// NewApplicationReceivedTask builds the enqueueable task.
func NewApplicationReceivedTask(p ApplicationReceivedPayload) (taskx.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return taskx.Task{}, err
	}
	return taskx.Task{Type: TaskApplicationReceived, Queue: Queue, Payload: payload}, nil
}

// NewStatusChangedTask builds the enqueueable task.
func NewStatusChangedTask(p StatusChangedPayload) (taskx.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return taskx.Task{}, err
	}
	return taskx.Task{Type: TaskStatusChanged, Queue: Queue, Payload: payload}, nil
}

const applicationReceivedTmpl = `
<h2>New application for {{.JobTitle}}</h2>
<p>Hi {{.EmployerName}},</p>
<p>{{.CandidateName}} just applied to <strong>{{.JobTitle}}</strong>.</p>
<p>Application ID: {{.ApplicationID}}</p>`

const statusChangedTmpl = `
<h2>Your application was updated</h2>
<p>Hi {{.CandidateName}},</p>
<p>Your application for <strong>{{.JobTitle}}</strong> is now
<strong>{{.NewStatus}}</strong>.</p>
<p>Application ID: {{.ApplicationID}}</p>`

// RegisterTemplates loads the notification email templates into the mail
// client.
func RegisterTemplates(mail *notifx.Client) error {
	if err := mail.RegisterTemplate(TaskApplicationReceived, applicationReceivedTmpl); err != nil {
		return err
	}
	return mail.RegisterTemplate(TaskStatusChanged, statusChangedTmpl)
}

// RegisterHandlers attaches the email task handlers to the worker client.
func RegisterHandlers(worker *taskx.Client, mail *notifx.Client) {
	worker.Register(TaskApplicationReceived, func(ctx context.Context, task *taskx.TaskInfo) error {
		var p ApplicationReceivedPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return err
		}
		logx.WithField("application_id", p.ApplicationID).Debug("Sending application received email")
		return mail.SendTemplated(ctx, TaskApplicationReceived, p, notifx.EmailMessage{
			To:      []string{p.EmployerEmail},
			Subject: "New application: " + p.JobTitle,
		})
	})

	worker.Register(TaskStatusChanged, func(ctx context.Context, task *taskx.TaskInfo) error {
		var p StatusChangedPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return err
		}
		logx.WithField("application_id", p.ApplicationID).Debug("Sending status changed email")
		return mail.SendTemplated(ctx, TaskStatusChanged, p, notifx.EmailMessage{
			To:      []string{p.CandidateEmail},
			Subject: "Application update: " + p.JobTitle,
		})
	})
}
