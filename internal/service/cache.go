// Пакет service — бизнес-логика QuickFolio.
// RecordCache — LRU-кэш записей с TTL для чтения по id.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/quickfolio/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qf_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш записей.",
	}, []string{"entity"})
	cacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qf_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша записей.",
	}, []string{"entity"})
)

// RecordCache — кэш папок и фолио внутри одного процесса.
// Записи содержат связи (папка с фолио, фолио с папкой), поэтому любая
// запись в хранилище сбрасывает кэш целиком.
//
// Сброс виден только процессу, выполнившему запись: кэш допустим лишь при
// развёртывании в один экземпляр (QF_CACHE_SIZE=0 — значение по умолчанию).
//
// Каждый Invalidate увеличивает поколение. Чтение из хранилища запоминает
// поколение до запроса, и Set* с устаревшим поколением ничего не кладёт.
// Нулевой указатель — корректный отключённый кэш.
type RecordCache struct {
	mu     sync.Mutex
	gen    uint64
	files  *expirable.LRU[string, *model.File]
	folios *expirable.LRU[string, *model.Folio]
}

// NewRecordCache создаёт кэш с указанным размером (на каждую сущность) и TTL.
// maxSize == 0 — кэш отключён, возвращается nil.
func NewRecordCache(maxSize int, ttl time.Duration) *RecordCache {
	if maxSize <= 0 {
		return nil
	}
	return &RecordCache{
		files:  expirable.NewLRU[string, *model.File](maxSize, nil, ttl),
		folios: expirable.NewLRU[string, *model.Folio](maxSize, nil, ttl),
	}
}

// GetFile возвращает папку из кэша.
func (c *RecordCache) GetFile(id string) (*model.File, bool) {
	if c == nil {
		return nil, false
	}
	return lookup(c.files, "file", id)
}

// Generation возвращает текущее поколение кэша.
// Вызывается перед чтением из хранилища, результат передаётся в Set*.
func (c *RecordCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetFile добавляет папку в кэш, если с поколения gen не было Invalidate.
func (c *RecordCache) SetFile(gen uint64, f *model.File) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen {
		c.files.Add(f.ID, f)
	}
}

// GetFolio возвращает фолио из кэша.
func (c *RecordCache) GetFolio(id string) (*model.Folio, bool) {
	if c == nil {
		return nil, false
	}
	return lookup(c.folios, "folio", id)
}

// SetFolio добавляет фолио в кэш, если с поколения gen не было Invalidate.
func (c *RecordCache) SetFolio(gen uint64, fo *model.Folio) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen {
		c.folios.Add(fo.ID, fo)
	}
}

// Invalidate сбрасывает кэш после изменения данных и начинает новое поколение.
func (c *RecordCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.files.Purge()
	c.folios.Purge()
}

// Len возвращает количество записей в кэше (папки + фолио).
func (c *RecordCache) Len() int {
	if c == nil {
		return 0
	}
	return c.files.Len() + c.folios.Len()
}

func lookup[V any](cache *expirable.LRU[string, V], entity, id string) (V, bool) {
	val, ok := cache.Get(id)
	if ok {
		cacheHitsTotal.WithLabelValues(entity).Inc()
		return val, true
	}
	cacheMissesTotal.WithLabelValues(entity).Inc()
	var zero V
	return zero, false
}
