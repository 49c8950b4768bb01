package repository

import "errors"

// ErrDuplicateMember возвращается при попытке повторно добавить
// пользователя в проект
var ErrDuplicateMember = errors.New("user is already a member of the project")
