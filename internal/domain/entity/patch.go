package entity

import "strings"

// QuestionPatch описывает частичное обновление вопроса.
// nil-поле означает "не менять"; Options == nil оставляет варианты как есть,
// непустой срез полностью заменяет набор вариантов.
type QuestionPatch struct {
	Text       *string
	Difficulty *Difficulty
	Options    []Option
}

// ReplacesOptions сообщает, заменяет ли патч набор вариантов
func (p QuestionPatch) ReplacesOptions() bool {
	return p.Options != nil
}

// Apply переносит заданные поля патча в вопрос
func (p QuestionPatch) Apply(q *Question) {
	if p.Text != nil {
		q.Text = strings.TrimSpace(*p.Text)
	}
	if p.Difficulty != nil {
		q.Difficulty = *p.Difficulty
	}
	if p.Options != nil {
		q.Options = TrimOptions(p.Options)
	}
}

// TriviaPatch описывает частичное обновление тривии.
// QuestionIDs != nil полностью заменяет набор вопросов.
type TriviaPatch struct {
	Name        *string
	Description *string
	QuestionIDs []uint
}

// ReplacesQuestions сообщает, заменяет ли патч набор вопросов
func (p TriviaPatch) ReplacesQuestions() bool {
	return p.QuestionIDs != nil
}

// Apply переносит скалярные поля патча в тривию
func (p TriviaPatch) Apply(t *Trivia) {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
}

// UserPatch описывает частичное обновление пользователя.
// Password передается в открытом виде и хешируется в BeforeSave.
type UserPatch struct {
	FullName *string
	Email    *string
	Password *string
	Role     *Role
}

// Apply переносит заданные поля патча в пользователя
func (p UserPatch) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// TrimOptions возвращает копию вариантов с обрезанными пробелами в тексте
func TrimOptions(options []Option) []Option {
	out := make([]Option, len(options))
	for i, o := range options {
		out[i] = Option{Text: strings.TrimSpace(o.Text), IsCorrect: o.IsCorrect}
	}
	return out
}
