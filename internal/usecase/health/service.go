package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Ready indicates the engine can serve searches.
	Ready Status = "ready"
	// Degraded indicates the engine serves searches but an optional component is failing.
	Degraded Status = "degraded"
	// NotReady indicates corpus or embedding matrix are not loaded.
	NotReady Status = "not_ready"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// CorpusChecker reports whether the corpus is loaded.
type CorpusChecker interface {
	Len() int
}

// IndexChecker reports whether the embedding matrix is available.
type IndexChecker interface {
	Ready() bool
}

// ComponentChecker verifies an optional collaborator (embedding provider,
// history db, cache).
type ComponentChecker interface {
	HealthCheck(ctx context.Context) error
}

// Service coordinates health checks. The engine is ready once corpus and
// embedding matrix are both loaded; optional component failures only degrade.
type Service struct {
	corpus     CorpusChecker
	index      IndexChecker
	components map[string]ComponentChecker
}

// New creates a Service.
func New(corpus CorpusChecker, index IndexChecker) *Service {
	return &Service{
		corpus:     corpus,
		index:      index,
		components: make(map[string]ComponentChecker),
	}
}

// WithComponent registers an optional named component check.
func (s *Service) WithComponent(name string, c ComponentChecker) *Service {
	if c != nil {
		s.components[name] = c
	}
	return s
}

// Ready reports whether searches can be served.
func (s *Service) Ready() bool {
	return s.corpus.Len() > 0 && s.index.Ready()
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.corpus.Len() > 0 {
		checks["corpus"] = CheckOK
	} else {
		checks["corpus"] = CheckError
	}
	if s.index.Ready() {
		checks["embedding_index"] = CheckOK
	} else {
		checks["embedding_index"] = CheckError
	}

	status := Ready
	if checks["corpus"] == CheckError || checks["embedding_index"] == CheckError {
		status = NotReady
	}

	for name, c := range s.components {
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = CheckError
			if status == Ready {
				status = Degraded
			}
		} else {
			checks[name] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
