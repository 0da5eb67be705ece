package workflow

import "github.com/google/uuid"

// Action names a requested workflow operation. Names are canonical and match
// the action surface consumed by the UI layer.
type Action string

const (
	ActionStartReview    Action = "startReview"
	ActionForward        Action = "forward"
	ActionApprove        Action = "approve"
	ActionReturn         Action = "return"
	ActionReject         Action = "reject"
	ActionAddObservation Action = "addObservation"
	ActionRespond        Action = "respondToObservation"
	ActionResolve        Action = "resolveObservation"
	ActionResubmit       Action = "resubmit"

	ActionSendToAudit          Action = "sendToAudit"
	ActionAuditApprove         Action = "auditApprove"
	ActionAuditReturn          Action = "auditReturn"
	ActionAuditReject          Action = "auditReject"
	ActionSendToCEOOffice      Action = "sendToCeoOffice"
	ActionForwardToCEO         Action = "forwardToCeo"
	ActionCEOApprove           Action = "ceoApprove"
	ActionCEOReturn            Action = "ceoReturn"
	ActionCEOSecretariatReturn Action = "ceoSecretariatReturn"
	ActionCEOSecretariatReject Action = "ceoSecretariatReject"
	ActionSendToStore          Action = "sendToStore"
	ActionRecordGRN            Action = "recordGrn"
	ActionSendToProcurement    Action = "sendToProcurement"
	ActionSendToPostGRNAudit   Action = "sendToPostGrnAudit"
	ActionSendToFinance        Action = "sendToFinance"
	ActionCancel               Action = "cancel"
)

// ObservationInput is a reviewer observation supplied with a transition
// payload or the addObservation action.
type ObservationInput struct {
	Text         string     `json:"text"`
	Severity     Severity   `json:"severity"`
	AttachmentID *uuid.UUID `json:"attachment_id,omitempty"`
}

// ObservationAnswer pairs an existing observation with the originator's
// response, written before a resubmission transition applies.
type ObservationAnswer struct {
	ObservationID uuid.UUID `json:"observation_id"`
	Answer        string    `json:"answer"`
}

// Payload carries the action-specific inputs of a transition request. Unused
// fields are ignored by actions that do not consume them.
type Payload struct {
	Comments           string              `json:"comments,omitempty"`
	Observations       []ObservationInput  `json:"observations,omitempty"`
	ObservationAnswers []ObservationAnswer `json:"observation_answers,omitempty"`
	DigitalSignature   string              `json:"digital_signature,omitempty"`
	Items              []LineItem          `json:"items,omitempty"`
}
