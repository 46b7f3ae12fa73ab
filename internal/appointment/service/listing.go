package service

import (
	"context"

	"peegflow/internal/appointment/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/requestcontext"
)

// ListRange returns slots starting inside w, oldest first. Patients see
// only their own slots; admins see every slot with the patient's contact.
func (s *Service) ListRange(ctx context.Context, p *id.Principal, w id.Window) ([]*models.View, error) {
	if err := requireRole(p, id.RoleAdmin, id.RolePatient); err != nil {
		return nil, err
	}
	var patient *id.UserID
	if p.Role == id.RolePatient {
		patient = &p.UserID
	}
	appts, err := s.store.ListRange(ctx, p.TenantID, w, patient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list appointments")
	}
	if p.Role != id.RoleAdmin {
		return plain(appts), nil
	}
	return s.withContacts(ctx, p.TenantID, appts), nil
}

// ListAvailable returns the bookable future slots.
func (s *Service) ListAvailable(ctx context.Context, p *id.Principal) ([]*models.View, error) {
	if err := requireRole(p, id.RoleAdmin, id.RolePatient); err != nil {
		return nil, err
	}
	appts, err := s.store.ListAvailable(ctx, p.TenantID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list available appointments")
	}
	return plain(appts), nil
}

// ListMine returns the calling patient's slots, newest first.
func (s *Service) ListMine(ctx context.Context, p *id.Principal) ([]*models.View, error) {
	if err := requireRole(p, id.RolePatient); err != nil {
		return nil, err
	}
	appts, err := s.store.ListByPatient(ctx, p.TenantID, p.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list appointments")
	}
	return plain(appts), nil
}

// withContacts joins patient profiles onto admin listings. A directory
// failure degrades to listings without contacts.
func (s *Service) withContacts(ctx context.Context, tenantID id.TenantID, appts []*models.Appointment) []*models.View {
	views := plain(appts)
	userIDs := models.BookedUserIDs(appts)
	if s.directory == nil || len(userIDs) == 0 {
		return views
	}
	contacts, err := s.directory.ContactsByUser(ctx, tenantID, userIDs)
	if err != nil {
		s.logger.WarnContext(ctx, "patient directory lookup failed",
			"error", err,
			"tenant_id", tenantID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return views
	}
	for _, v := range views {
		if v.PatientUserID == nil {
			continue
		}
		if c, ok := contacts[*v.PatientUserID]; ok {
			v.Contact = &c
		}
	}
	return views
}

func (s *Service) withContact(ctx context.Context, p *id.Principal, appt *models.Appointment) *models.View {
	if p.Role != id.RoleAdmin {
		return &models.View{Appointment: appt}
	}
	return s.withContacts(ctx, p.TenantID, []*models.Appointment{appt})[0]
}

func plain(appts []*models.Appointment) []*models.View {
	out := make([]*models.View, 0, len(appts))
	for _, a := range appts {
		out = append(out, &models.View{Appointment: a})
	}
	return out
}
