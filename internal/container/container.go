package container

import (
	"github.com/sirupsen/logrus"

	app "vision-inspect/internal/application"
	"vision-inspect/internal/domain/port"
)

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
}

func New(
	userRepo port.UserRepository,
	referenceRepo port.ReferenceRepository,
	detector port.DefectDetector,
	describer port.DefectDescriber,
	log logrus.FieldLogger,
) *Container {
	userService := app.NewUserService(userRepo)
	inspectionService := app.NewInspectionService(userService, referenceRepo, detector, describer, log)

	return &Container{
		UserService:       userService,
		InspectionService: inspectionService,
	}
}
