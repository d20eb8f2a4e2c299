package implementation

import (
	"errors"
	"fmt"

	"chatdoc-be/pkg/apperror"

	"gorm.io/gorm"
)

// translate maps driver errors onto the application taxonomy. It relies on
// the gorm.Config TranslateError flag set in pkg/database.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", apperror.ErrDuplicateKey, err)
	}
	return err
}
