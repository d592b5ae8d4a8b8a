package conversation

import "errors"

var (
	// ErrInvalidInput - событие не соответствует ожиданиям текущего шага;
	// шаг не меняется, пользователь получает повторный запрос
	ErrInvalidInput = errors.New("invalid input for current step")

	// ErrNoActiveSession - у пользователя нет активного диалога;
	// нужно начать заново через /report
	ErrNoActiveSession = errors.New("no active session")

	// ErrSubmissionFailed - коллектор недоступен или отклонил отчет;
	// сессия сохраняется для повторной попытки
	ErrSubmissionFailed = errors.New("report submission failed")
)
