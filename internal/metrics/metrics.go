package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	TopicsFetched      int64
	TopicsDeduplicated int64
	ArticlesGenerated  int64
	ArticlesPersisted  int64
	DuplicatesSkipped  int64
	ImagesAttached     int64
	AdUnitsInserted    int64
	PersistFailures    int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddTopicsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsFetched += int64(n)
}

func (m *Metrics) AddTopicsDeduplicated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsDeduplicated += int64(n)
}

func (m *Metrics) IncrementArticlesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesGenerated++
}

func (m *Metrics) IncrementArticlesPersisted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesPersisted++
}

func (m *Metrics) IncrementDuplicatesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementImagesAttached() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImagesAttached++
}

func (m *Metrics) AddAdUnitsInserted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AdUnitsInserted += int64(n)
}

func (m *Metrics) IncrementPersistFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistFailures++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"topics_fetched":          m.TopicsFetched,
		"topics_deduplicated":     m.TopicsDeduplicated,
		"articles_generated":      m.ArticlesGenerated,
		"articles_persisted":      m.ArticlesPersisted,
		"duplicates_skipped":      m.DuplicatesSkipped,
		"images_attached":         m.ImagesAttached,
		"ad_units_inserted":       m.AdUnitsInserted,
		"persist_failures":        m.PersistFailures,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
