package service

import (
	"errors"

	"go_flashcard_study/internal/model"
)

// internalError は AppError 以外のエラーを 500 用の AppError に包みます。
// 既に AppError ならそのまま返します。
func internalError(err error) error {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", errors.Join(model.ErrInternalServer, err))
}

func notFoundError(code, message string) error {
	return model.NewAppError(code, message, "", model.ErrNotFound)
}

func forbiddenError(code, message string) error {
	return model.NewAppError(code, message, "", model.ErrForbidden)
}
