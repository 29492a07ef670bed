package server

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/sessions"
)

var validate = validator.New()

// SessionRequest is the body of session create and update calls.
// The roster is not accepted here; it only changes through the participate routes.
type SessionRequest struct {
	Name        string     `json:"name" validate:"required,max=50"`
	Date        *time.Time `json:"date" validate:"required"`
	TeacherID   *int64     `json:"teacher_id" validate:"required"`
	Description string     `json:"description" validate:"max=2500"`
}

func (req *SessionRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.Wrapf(errors.ErrBadInputFormat, "%s failed %s", fe.Field(), fe.Tag())
		}
		return errors.Wrapf(errors.ErrBadInputFormat, "%v", err)
	}
	return nil
}

// apply copies the editable fields onto a session
func (req *SessionRequest) apply(session *sessions.Session) {
	session.Name = req.Name
	session.Date = *req.Date
	session.TeacherID = *req.TeacherID
	session.Description = req.Description
}
