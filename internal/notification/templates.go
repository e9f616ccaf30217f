package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/TaiVuViet-153/HR-Portal/internal/events"
)

const subjectPrefix = "[HR.Portal]"

var leaveMailTemplate = template.Must(template.New("leave_request").Parse(`<html>
<body>
  <p>Hi {{.UserName}},</p>
  <p>{{.Lead}}</p>
  <table>
    <tr><td>Type</td><td>{{.Event.LeaveType}}</td></tr>
    <tr><td>Status</td><td>{{.Event.Status}}</td></tr>
    {{if .Event.StartDate}}<tr><td>From</td><td>{{.Event.StartDate}}</td></tr>{{end}}
    {{if .Event.EndDate}}<tr><td>To</td><td>{{.Event.EndDate}}</td></tr>{{end}}
    {{if .Event.IsHalfDayOff}}<tr><td>Half day</td><td>yes</td></tr>{{end}}
    {{if .Event.Reason}}<tr><td>Reason</td><td>{{.Event.Reason}}</td></tr>{{end}}
  </table>
  <p>HR Portal</p>
</body>
</html>`))

// RenderLeaveMail builds the subject and HTML body for a leave request
// event. Unknown event kinds fall back to the generic update wording so
// a new producer version never breaks the consumer.
func RenderLeaveMail(event events.LeaveRequestEvent) (subject, htmlBody string, err error) {
	var lead string
	switch event.EventType {
	case events.LeaveRequestCreated:
		subject = fmt.Sprintf("%s New leave request #%d", subjectPrefix, event.RequestID)
		lead = "your leave request has been submitted and is awaiting review."
	case events.LeaveRequestStatusChanged:
		subject = fmt.Sprintf("%s Leave request #%d %s", subjectPrefix, event.RequestID, event.Status)
		lead = fmt.Sprintf("your leave request moved from %s to %s.", event.PreviousStatus, event.Status)
	case events.LeaveRequestDeleted:
		subject = fmt.Sprintf("%s Leave request #%d deleted", subjectPrefix, event.RequestID)
		lead = "your leave request has been deleted."
	default:
		subject = fmt.Sprintf("%s Leave request #%d updated", subjectPrefix, event.RequestID)
		lead = "your leave request has been updated."
	}

	var buf bytes.Buffer
	err = leaveMailTemplate.Execute(&buf, struct {
		UserName string
		Lead     string
		Event    events.LeaveRequestEvent
	}{
		UserName: event.UserName,
		Lead:     lead,
		Event:    event,
	})
	if err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
