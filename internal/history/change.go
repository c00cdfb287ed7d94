package history

import (
	"fmt"
	"strings"
)

const identityDisplayTemplateConstant = "%s <%s>"

// Identity describes the author attached to a change.
type Identity struct {
	Name  string
	Email string
}

// String renders the identity in the conventional "Name <email>" form.
func (identity Identity) String() string {
	return fmt.Sprintf(identityDisplayTemplateConstant, identity.Name, identity.Email)
}

// Change is an immutable record of a single origin change.
type Change struct {
	reference string
	message   string
	author    Identity
	labels    map[string]string
}

// NewChange constructs a Change, defensively copying the label mapping.
func NewChange(reference string, message string, author Identity, labels map[string]string) Change {
	copiedLabels := make(map[string]string, len(labels))
	for labelName, labelValue := range labels {
		copiedLabels[labelName] = labelValue
	}
	return Change{
		reference: reference,
		message:   message,
		author:    author,
		labels:    copiedLabels,
	}
}

// Reference returns the opaque origin identifier of the change.
func (change Change) Reference() string {
	return change.reference
}

// Message returns the change description.
func (change Change) Message() string {
	return change.message
}

// Author returns the identity recorded on the change.
func (change Change) Author() Identity {
	return change.author
}

// Labels returns a copy of the free-form annotations attached to the change.
func (change Change) Labels() map[string]string {
	copiedLabels := make(map[string]string, len(change.labels))
	for labelName, labelValue := range change.labels {
		copiedLabels[labelName] = labelValue
	}
	return copiedLabels
}

// Label returns the named annotation value when present.
func (change Change) Label(labelName string) (string, bool) {
	labelValue, labelExists := change.labels[labelName]
	return labelValue, labelExists
}

// FirstMessageLine returns the summary line of the change message.
func (change Change) FirstMessageLine() string {
	messageLines := strings.SplitN(change.message, "\n", 2)
	return strings.TrimSpace(messageLines[0])
}
