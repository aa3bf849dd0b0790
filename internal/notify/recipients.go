// Package notify implements the results notifier: it decides who receives a
// survey's results, renders the matching email variant and sends all of them
// concurrently.
package notify

import "github.com/nyashahama/wellness-notifier/internal/survey"

// Role selects the email variant and subject for one recipient.
type Role string

const (
	RoleOriginal     Role = "original"     // the respondent of a self-administered survey
	RoleClient       Role = "client"       // the client in a practitioner-administered survey
	RolePractitioner Role = "practitioner" // the practitioner who administered it
)

// Task is one email to send. It lives only for the duration of a run.
type Task struct {
	Address string
	Role    Role
}

// Recipients classifies the record and returns the emails to send.
//
// A record with a clientEmail or practitionerEmail field (present, whatever its
// value) is a practitioner submission: the client and the practitioner each get
// a task if their address is non-empty. Any other record is a single-respondent
// submission and gets one original task if email is non-empty. The result may
// be empty.
func Recipients(rec survey.Record) []Task {
	var tasks []Task

	if rec.IsPractitionerSubmission() {
		if rec.ClientEmail.Truthy() {
			tasks = append(tasks, Task{Address: rec.ClientEmail.Value(), Role: RoleClient})
		}
		if rec.PractitionerEmail.Truthy() {
			tasks = append(tasks, Task{Address: rec.PractitionerEmail.Value(), Role: RolePractitioner})
		}
		return tasks
	}

	if rec.Email.Truthy() {
		tasks = append(tasks, Task{Address: rec.Email.Value(), Role: RoleOriginal})
	}
	return tasks
}
