package employee

import (
	"context"
	"encoding/json"
	"fmt"

	"attendsuite/internal/auth"
	"attendsuite/internal/domain/attendance"
	"attendsuite/internal/platform/crypto"
)

type Service struct {
	store  *Store
	cipher *crypto.Service
}

func NewService(store *Store, cipher *crypto.Service) *Service {
	return &Service{store: store, cipher: cipher}
}

func (s *Service) Get(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.Get(ctx, employeeID)
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	return s.store.GetByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]Employee, int, error) {
	return s.store.List(ctx, f, limit, offset)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	applyScheduleDefaults(&in.Schedule)
	if err := validateSchedule(in.Schedule); err != nil {
		return Employee{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Employee{}, err
	}
	id, err := s.store.Create(ctx, in, hash)
	if err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, id)
}

// UpdateMyProfile lets an employee change their own address and
// emergency contact. Nothing else on the profile is reachable here.
func (s *Service) UpdateMyProfile(ctx context.Context, userID string, in SelfUpdateInput) (Employee, error) {
	if !in.Empty() {
		if err := s.store.UpdateSelf(ctx, userID, in); err != nil {
			return Employee{}, err
		}
	}
	return s.store.GetByUserID(ctx, userID)
}

func (s *Service) Update(ctx context.Context, employeeID string, in UpdateInput) (Employee, error) {
	applyScheduleDefaults(&in.Schedule)
	if err := validateSchedule(in.Schedule); err != nil {
		return Employee{}, err
	}
	if err := s.store.Update(ctx, employeeID, in); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, employeeID)
}

func (s *Service) Deactivate(ctx context.Context, employeeID string) error {
	return s.store.Deactivate(ctx, employeeID)
}

// RegisterFace encrypts the descriptor payload before it touches the
// database. Image URLs stay plaintext, they carry no biometric signal.
func (s *Service) RegisterFace(ctx context.Context, employeeID string, enrollment FaceEnrollment) error {
	if len(enrollment.Descriptors) == 0 {
		return fmt.Errorf("face descriptors are required")
	}
	if !json.Valid(enrollment.Descriptors) {
		return fmt.Errorf("face descriptors must be valid JSON")
	}
	encrypted, err := s.cipher.Encrypt(enrollment.Descriptors)
	if err != nil {
		return err
	}
	return s.store.SaveFaceData(ctx, employeeID, encrypted, enrollment.Images)
}

// FaceDescriptors returns the decrypted descriptor JSON for the
// client-side matcher. Callers must never echo it into list or profile
// responses.
func (s *Service) FaceDescriptors(ctx context.Context, employeeID string) (json.RawMessage, error) {
	encrypted, err := s.store.FaceData(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.cipher.Decrypt(encrypted)
}

func (s *Service) ClearFace(ctx context.Context, employeeID string) error {
	return s.store.ClearFaceData(ctx, employeeID)
}

func applyScheduleDefaults(ws *WorkSchedule) {
	if ws.CheckInTime == "" {
		ws.CheckInTime = "08:00"
	}
	if ws.CheckOutTime == "" {
		ws.CheckOutTime = "17:00"
	}
	if len(ws.WorkingDays) == 0 {
		ws.WorkingDays = []int{1, 2, 3, 4, 5}
	}
}

func validateSchedule(ws WorkSchedule) error {
	if _, err := attendance.ParseScheduleTime(ws.CheckInTime); err != nil {
		return fmt.Errorf("invalid check-in time: %w", err)
	}
	if _, err := attendance.ParseScheduleTime(ws.CheckOutTime); err != nil {
		return fmt.Errorf("invalid check-out time: %w", err)
	}
	for _, d := range ws.WorkingDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("working day %d out of range", d)
		}
	}
	return nil
}
