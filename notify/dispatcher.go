package notify

import "go.uber.org/zap"

// MailFunc sends one email to the given recipients. utils.SendMail satisfies
// it in production; tests substitute a recorder.
type MailFunc func(subject, body string, to []string) error

// Dispatcher sends best-effort transactional mail. Failures are logged and
// swallowed; the triggering request never sees them.
type Dispatcher struct {
	send MailFunc
	log  *zap.SugaredLogger
}

// NewDispatcher builds a Dispatcher around a mail function.
func NewDispatcher(send MailFunc, log *zap.SugaredLogger) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{send: send, log: log}
}

// Dispatch fires one send. An empty recipient list is a no-op: no connection
// is attempted.
func (d *Dispatcher) Dispatch(subject, body string, to []string) {
	if d == nil || d.send == nil || len(to) == 0 {
		return
	}
	if err := d.send(subject, body, to); err != nil {
		d.log.Warnf("mail dispatch failed recipients=%d err=%v", len(to), err)
	}
}
