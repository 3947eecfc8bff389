// Package storage предоставляет локальное key-value хранилище состояния
// клиента: долговременное файловое и временное в памяти.
package storage

// Фиксированные ключи локального состояния клиента.
const (
	KeyToken      = "jwt_token"
	KeyCart       = "cart"
	KeyOrderDraft = "order_draft"
)

// Storage описывает контракт локального хранилища клиента.
type Storage interface {
	// Get возвращает значение по ключу и признак его наличия.
	Get(key string) (string, bool)
	// Set сохраняет значение, перезаписывая прежнее.
	Set(key, value string) error
	// Remove удаляет значение; отсутствие ключа не является ошибкой.
	Remove(key string)
}
