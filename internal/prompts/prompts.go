// Package prompts реализует владельца глобальных блокирующих диалогов
// об ошибках аутентификации и авторизации. Для каждого вида диалога в
// процессе существует не более одного живого экземпляра.
package prompts

import "sync"

// Kind описывает вид блокирующего диалога.
type Kind string

const (
	KindSessionExpired Kind = "session_expired"
	KindForbidden      Kind = "forbidden"
)

// Prompt представляет один показанный диалог.
type Prompt struct {
	Kind    Kind
	Title   string
	Message string

	confirm func()
}

// Confirm выполняет действие диалога и закрывает его.
func (p *Prompt) Confirm() {
	if p.confirm != nil {
		p.confirm()
	}
}

// Presenter отображает и скрывает диалоги. Реализация предоставляется
// слоем представления.
type Presenter interface {
	Show(p *Prompt)
	Hide(p *Prompt)
}

// NopPresenter не отображает ничего. Используется по умолчанию и в тестах.
type NopPresenter struct{}

func (NopPresenter) Show(*Prompt) {}
func (NopPresenter) Hide(*Prompt) {}

// Host владеет обоими диалогами. Повторный показ уже открытого диалога
// не создаёт новый экземпляр.
type Host struct {
	mu        sync.Mutex
	presenter Presenter
	onSignIn  func()

	sessionExpired *Prompt
	forbidden      *Prompt
}

// NewHost создаёт владельца диалогов. onSignIn вызывается действием
// диалога истёкшей сессии для перехода на страницу входа; допускается nil.
func NewHost(presenter Presenter, onSignIn func()) *Host {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	return &Host{
		presenter: presenter,
		onSignIn:  onSignIn,
	}
}

// ShowSessionExpired показывает диалог истёкшей сессии, если он ещё не
// показан. Единственное действие диалога ведёт на страницу входа.
func (h *Host) ShowSessionExpired() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessionExpired != nil {
		return
	}

	p := &Prompt{
		Kind:    KindSessionExpired,
		Title:   "Session expired",
		Message: "Your session has expired. Please sign in again.",
	}
	p.confirm = func() {
		h.HideSessionExpired()
		if h.onSignIn != nil {
			h.onSignIn()
		}
	}

	h.sessionExpired = p
	h.presenter.Show(p)
}

// HideSessionExpired закрывает диалог истёкшей сессии, если он показан.
func (h *Host) HideSessionExpired() {
	h.mu.Lock()
	p := h.sessionExpired
	h.sessionExpired = nil
	h.mu.Unlock()

	if p != nil {
		h.presenter.Hide(p)
	}
}

// ShowForbidden показывает диалог отказа в доступе, если он ещё не показан.
// Диалог закрывается без перехода.
func (h *Host) ShowForbidden() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.forbidden != nil {
		return
	}

	p := &Prompt{
		Kind:    KindForbidden,
		Title:   "Not authorized",
		Message: "You do not have permission to perform this action.",
	}
	p.confirm = func() {
		h.HideForbidden()
	}

	h.forbidden = p
	h.presenter.Show(p)
}

// HideForbidden закрывает диалог отказа в доступе, если он показан.
func (h *Host) HideForbidden() {
	h.mu.Lock()
	p := h.forbidden
	h.forbidden = nil
	h.mu.Unlock()

	if p != nil {
		h.presenter.Hide(p)
	}
}

// Active сообщает, показан ли сейчас диалог указанного вида.
func (h *Host) Active(kind Kind) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch kind {
	case KindSessionExpired:
		return h.sessionExpired != nil
	case KindForbidden:
		return h.forbidden != nil
	}
	return false
}
