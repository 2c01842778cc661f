package categories

import (
	"fmt"
	"strings"

	"github.com/atelier-retail/atelier/internal/shared"
)

func (s *Service) validate(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	return nil
}
