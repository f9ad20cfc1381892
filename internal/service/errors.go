package service

import (
	"errors"
	"fmt"

	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

var knownKinds = []error{
	apperrors.ErrNotFound,
	apperrors.ErrConflict,
	apperrors.ErrValidation,
	apperrors.ErrBadRequest,
	apperrors.ErrUnauthorized,
	apperrors.ErrForbidden,
	apperrors.ErrInternal,
}

// classify оставляет ошибки приложения как есть, остальные оборачивает в ErrInternal
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range knownKinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
}

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperrors.ErrNotFound, fmt.Sprintf(format, args...))
}

func conflictErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperrors.ErrConflict, fmt.Sprintf(format, args...))
}

// wrapNotFound уточняет сообщение ErrNotFound, прочие ошибки возвращает без изменений
func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return notFoundErr(format, args...)
	}
	return err
}

// uniqueIDs убирает повторы, сохраняя порядок
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// droppedIDs возвращает элементы requested, отсутствующие в kept
func droppedIDs(requested, kept []uint) []uint {
	keep := make(map[uint]struct{}, len(kept))
	for _, id := range kept {
		keep[id] = struct{}{}
	}
	var out []uint
	for _, id := range requested {
		if _, ok := keep[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func isKind(err, kind error) bool {
	return errors.Is(err, kind)
}
