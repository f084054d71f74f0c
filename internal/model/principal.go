package model

type Principal struct {
	UserID string
}
