package app

import (
	"context"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/domain/port"
	"vision-inspect/internal/infrastructure/imagefile"
)

type InspectionService struct {
	users      *UserService
	references port.ReferenceRepository
	detector   port.DefectDetector
	describer  port.DefectDescriber
	log        logrus.FieldLogger
}

// InspectionOutput содержит вердикт, его описание и JPEG с подсветкой.
type InspectionOutput struct {
	Verdict     *entity.DefectVerdict
	Description *entity.Description
	Highlighted []byte
}

// NewInspectionService создаёт сервис, который управляет проверкой дефектов.
func NewInspectionService(
	users *UserService,
	references port.ReferenceRepository,
	detector port.DefectDetector,
	describer port.DefectDescriber,
	log logrus.FieldLogger,
) *InspectionService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &InspectionService{
		users:      users,
		references: references,
		detector:   detector,
		describer:  describer,
		log:        log,
	}
}

// BeginCheck забывает прежний эталон и ждёт новый.
func (s *InspectionService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := s.references.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("drop reference: %w", err)
	}
	return s.users.BeginCheck(ctx, userID, chatID)
}

// AcceptOriginalPhoto сохраняет эталон и переводит пользователя к ожиданию проверяемого фото.
func (s *InspectionService) AcceptOriginalPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*entity.User, error) {
	reference, err := imagefile.Decode(photo)
	if err != nil {
		return nil, err
	}
	if err := s.references.Put(ctx, userID, reference); err != nil {
		return nil, fmt.Errorf("store reference: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"width":   reference.Bounds().Dx(),
		"height":  reference.Bounds().Dy(),
	}).Info("reference photo accepted")

	return s.users.SetState(ctx, userID, chatID, entity.StateAwaitingDefectPhoto)
}

// AcceptDefectPhoto сравнивает фото с сохранённым эталоном и возвращает пользователя в главное меню.
// Эталон остаётся, пока пользователь не начнёт новую проверку или не отменит её.
func (s *InspectionService) AcceptDefectPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*entity.User, *InspectionOutput, error) {
	reference, ok, err := s.references.Get(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load reference: %w", err)
	}
	if !ok {
		return nil, nil, entity.ErrReferenceMissing
	}

	input, err := imagefile.Decode(photo)
	if err != nil {
		return nil, nil, err
	}

	out, err := s.Compare(ctx, input, reference)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.SetState(ctx, userID, chatID, entity.StateMainMenu)
	if err != nil {
		return nil, nil, err
	}
	return user, out, nil
}

// Cancel сбрасывает сценарий проверки и забывает эталон.
func (s *InspectionService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := s.references.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("drop reference: %w", err)
	}
	return s.users.Cancel(ctx, userID, chatID)
}

// Compare запускает детектор и готовит описание и подсветку.
func (s *InspectionService) Compare(ctx context.Context, input, reference image.Image) (*InspectionOutput, error) {
	if s.detector == nil {
		return nil, entity.ErrDetectorNotConfigured
	}

	verdict, err := s.detector.Compare(ctx, input, reference)
	if err != nil {
		return nil, err
	}

	out := &InspectionOutput{Verdict: verdict}
	if s.describer != nil {
		out.Description, err = s.describer.Describe(ctx, verdict)
		if err != nil {
			return nil, err
		}
	}

	if verdict.Annotated != nil {
		out.Highlighted, err = imagefile.EncodeJPEG(verdict.Annotated)
		if err != nil {
			return nil, err
		}
	}

	s.log.WithFields(logrus.Fields{
		"present":     verdict.Present,
		"diff_pixels": verdict.DiffPixels,
		"regions":     len(verdict.Defects),
	}).Info("inspection finished")

	return out, nil
}
