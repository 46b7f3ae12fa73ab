package models

import id "peegflow/pkg/domain"

// Contact is the patient profile data shown next to a booked slot.
type Contact struct {
	Name  string
	Email string
}

// View is an appointment as listed to a principal. Contact is filled only
// for admins and only when the booking account has a patient profile.
type View struct {
	*Appointment
	Contact *Contact
}

// BookedUserIDs returns the distinct accounts bound to appts.
func BookedUserIDs(appts []*Appointment) []id.UserID {
	seen := make(map[id.UserID]struct{}, len(appts))
	out := make([]id.UserID, 0, len(appts))
	for _, a := range appts {
		if a.PatientUserID == nil {
			continue
		}
		if _, ok := seen[*a.PatientUserID]; ok {
			continue
		}
		seen[*a.PatientUserID] = struct{}{}
		out = append(out, *a.PatientUserID)
	}
	return out
}
