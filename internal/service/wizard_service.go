package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"brdgenius-be/internal/dto"
	"brdgenius-be/internal/pkg/logger"
	"brdgenius-be/internal/pkg/metrics"
	"brdgenius-be/internal/pkg/serverutils"
	"brdgenius-be/internal/repository"
	"brdgenius-be/pkg/ai/brd"
	"brdgenius-be/pkg/events"
	"brdgenius-be/pkg/export"
	"brdgenius-be/pkg/wizard"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

// ErrBusy rejects a submission while an AI call for the same session is in flight.
var ErrBusy = serverutils.NewAppError(fiber.StatusConflict, "Please wait for the current request to finish.", nil)

// NoticeSink pushes notices to connected clients of a session.
type NoticeSink interface {
	SendNotice(sessionID string, notice wizard.Notice)
}

type IWizardService interface {
	Get(ctx context.Context, sessionID string) (*dto.WizardView, error)
	DefaultTemplate() string
	SubmitProblem(ctx context.Context, sessionID string, req *dto.SubmitProblemRequest) (*dto.WizardView, error)
	SelectSolution(ctx context.Context, sessionID string, req *dto.SelectSolutionRequest) (*dto.WizardView, error)
	SubmitTechStack(ctx context.Context, sessionID string, req *dto.SubmitTechStackRequest) (*dto.WizardView, error)
	SubmitTemplate(ctx context.Context, sessionID string, req *dto.SubmitTemplateRequest) (*dto.WizardView, error)
	Generate(ctx context.Context, sessionID string) (*dto.WizardView, error)
	EditContent(ctx context.Context, sessionID string, req *dto.EditContentRequest) (*dto.WizardView, error)
	GoBack(ctx context.Context, sessionID string) (*dto.WizardView, error)
	Restart(ctx context.Context, sessionID string) (*dto.WizardView, error)
	Export(ctx context.Context, sessionID string, format string) (*dto.ExportFile, error)
}

type WizardServiceConfig struct {
	Flow         wizard.Flow
	DocumentName string
	AITimeout    time.Duration
	// SessionIdle is how long an untouched session keeps its runtime flags.
	SessionIdle time.Duration
}

// sessionRuntime holds the flags that only live while the process runs.
// mu serializes every read-modify-write of the session's snapshot.
type sessionRuntime struct {
	mu         sync.Mutex
	suggesting bool
	generating bool
	// epoch changes on restart so late AI results for the old run are dropped.
	epoch uint64
}

func (r *sessionRuntime) busy() bool {
	return r.suggesting || r.generating
}

type wizardService struct {
	cfg        WizardServiceConfig
	repo       repository.WizardStateRepository
	suggester  brd.SolutionSuggester
	generator  brd.DocumentGenerator
	events     IEventPublisherService
	notices    NoticeSink
	metrics    metrics.Recorder
	logger     logger.ILogger
	sessionsMu sync.Mutex
	sessions   *cache.Cache
}

func NewWizardService(
	cfg WizardServiceConfig,
	repo repository.WizardStateRepository,
	suggester brd.SolutionSuggester,
	generator brd.DocumentGenerator,
	eventPublisher IEventPublisherService,
	notices NoticeSink,
	recorder metrics.Recorder,
	log logger.ILogger,
) IWizardService {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	if cfg.DocumentName == "" {
		cfg.DocumentName = "BRDGenius_Document"
	}
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = 24 * time.Hour
	}
	return &wizardService{
		cfg:       cfg,
		repo:      repo,
		suggester: suggester,
		generator: generator,
		events:    eventPublisher,
		notices:   notices,
		metrics:   recorder,
		logger:    log,
		sessions:  cache.New(cfg.SessionIdle, 10*time.Minute),
	}
}

func (s *wizardService) runtime(sessionID string) *sessionRuntime {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	rt := &sessionRuntime{}
	if x, found := s.sessions.Get(sessionID); found {
		rt = x.(*sessionRuntime)
	}
	// every access pushes the expiry back
	s.sessions.SetDefault(sessionID, rt)
	return rt
}

func (s *wizardService) view(state wizard.State, rt *sessionRuntime, notices ...wizard.Notice) *dto.WizardView {
	steps := s.cfg.Flow.Steps()
	out := &dto.WizardView{
		State:   state.Clone(),
		Steps:   make([]dto.StepView, len(steps)),
		Notices: notices,
	}
	if out.Notices == nil {
		out.Notices = []wizard.Notice{}
	}
	for i, info := range steps {
		out.Steps[i] = dto.StepView{
			Number:   info.Number,
			Key:      info.Kind,
			Title:    info.Title,
			Complete: s.cfg.Flow.Complete(&state, info.Kind),
		}
	}
	if rt != nil {
		out.IsSuggestionsLoading = rt.suggesting
		out.IsGenerating = rt.generating
		out.IsLoading = rt.busy()
	}
	return out
}

func (s *wizardService) Get(ctx context.Context, sessionID string) (*dto.WizardView, error) {
	rt := s.runtime(sessionID)
	rt.mu.Lock()
	defer rt.mu.Unlock()

	state, _ := s.repo.Load(ctx, sessionID)
	return s.view(state, rt), nil
}

func (s *wizardService) DefaultTemplate() string {
	return s.cfg.Flow.DefaultTemplate
}

// mutate runs fn on the stored state under the session lock and saves the
// result when fn succeeds.
func (s *wizardService) mutate(
	ctx context.Context,
	sessionID string,
	step wizard.StepKind,
	fn func(state *wizard.State) error,
) (*dto.WizardView, error) {
	rt := s.runtime(sessionID)
	rt.mu.Lock()
	defer rt.mu.Unlock()

	state, err := s.transition(ctx, sessionID, rt, step, fn)
	if err != nil {
		return nil, err
	}
	return s.view(state, rt), nil
}

// transition loads, applies fn and saves. Busy sessions are rejected.
// The caller holds rt.mu.
func (s *wizardService) transition(
	ctx context.Context,
	sessionID string,
	rt *sessionRuntime,
	step wizard.StepKind,
	fn func(state *wizard.State) error,
) (wizard.State, error) {
	if rt.busy() {
		s.metrics.ObserveTransition(string(step), metrics.OutcomeRejected)
		return wizard.State{}, ErrBusy
	}

	state, _ := s.repo.Load(ctx, sessionID)
	if err := fn(&state); err != nil {
		s.metrics.ObserveTransition(string(step), metrics.OutcomeRejected)
		s.logger.Debug("WizardService", "Transition rejected", map[string]interface{}{
			"session_id": sessionID,
			"step":       string(step),
			"reason":     err.Error(),
		})
		return wizard.State{}, err
	}
	s.repo.Save(ctx, sessionID, state)
	s.metrics.ObserveTransition(string(step), metrics.OutcomeSuccess)
	return state, nil
}

func (s *wizardService) SubmitProblem(ctx context.Context, sessionID string, req *dto.SubmitProblemRequest) (*dto.WizardView, error) {
	rt := s.runtime(sessionID)
	rt.mu.Lock()
	if rt.busy() {
		rt.mu.Unlock()
		s.metrics.ObserveTransition(string(wizard.KindProblemStatement), metrics.OutcomeRejected)
		return nil, ErrBusy
	}
	state, _ := s.repo.Load(ctx, sessionID)
	if err := s.cfg.Flow.SubmitProblem(&state, strings.TrimSpace(req.ProblemStatement)); err != nil {
		rt.mu.Unlock()
		s.metrics.ObserveTransition(string(wizard.KindProblemStatement), metrics.OutcomeRejected)
		return nil, err
	}
	s.repo.Save(ctx, sessionID, state)
	rt.suggesting = true
	epoch := rt.epoch
	rt.mu.Unlock()

	aiCtx, cancel := s.aiContext(ctx)
	started := time.Now()
	solutions, aiErr := s.suggester.Suggest(aiCtx, state.ProblemStatement)
	cancel()

	rt.mu.Lock()
	defer rt.mu.Unlock()

	// after a restart the flag belongs to whatever started since
	if rt.epoch != epoch {
		s.logger.Info("WizardService", "Discarding suggestions for a restarted session", map[string]interface{}{
			"session_id": sessionID,
		})
		current, _ := s.repo.Load(ctx, sessionID)
		return s.view(current, rt), nil
	}
	rt.suggesting = false
	if current, moved := s.superseded(ctx, sessionID, state); moved {
		return s.view(current, rt), nil
	}

	if aiErr != nil {
		solutions = nil
	}
	if err := s.cfg.Flow.ApplySuggestions(&state, solutions); err != nil {
		// unreachable while the session is locked as busy
		return nil, fmt.Errorf("apply suggestions: %w", err)
	}

	// blank entries are gone by now, so the stored list decides the outcome
	var notice wizard.Notice
	var evt events.BaseEvent
	switch count := len(state.SuggestedSolutions); {
	case aiErr != nil:
		s.metrics.ObserveAIRequest("suggest", metrics.OutcomeError, time.Since(started))
		s.logger.Error("WizardService", "Solution suggestion failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      aiErr,
		})
		notice = wizard.NoticeSuggestFailed
		evt = events.NewWizardEvent(events.SolutionsFailed, sessionID, map[string]interface{}{"error": aiErr.Error()})
	case count == 0:
		s.metrics.ObserveAIRequest("suggest", metrics.OutcomeEmpty, time.Since(started))
		notice = wizard.NoticeNoSolutions
		evt = events.NewWizardEvent(events.SolutionsSuggested, sessionID, map[string]interface{}{"count": 0})
	default:
		s.metrics.ObserveAIRequest("suggest", metrics.OutcomeSuccess, time.Since(started))
		evt = events.NewWizardEvent(events.SolutionsSuggested, sessionID, map[string]interface{}{"count": count})
	}

	s.repo.Save(ctx, sessionID, state)
	s.metrics.ObserveTransition(string(wizard.KindProblemStatement), metrics.OutcomeSuccess)
	s.logger.Info("WizardService", "Problem statement submitted", map[string]interface{}{
		"session_id":  sessionID,
		"suggestions": len(state.SuggestedSolutions),
	})
	s.publish(ctx, evt)

	var notices []wizard.Notice
	if notice != (wizard.Notice{}) {
		notices = append(notices, notice)
		s.push(sessionID, notice)
	}
	return s.view(state, rt, notices...), nil
}

func (s *wizardService) SelectSolution(ctx context.Context, sessionID string, req *dto.SelectSolutionRequest) (*dto.WizardView, error) {
	return s.mutate(ctx, sessionID, wizard.KindSolutions, func(state *wizard.State) error {
		return s.cfg.Flow.SelectSolution(state, strings.TrimSpace(req.Solution))
	})
}

func (s *wizardService) SubmitTechStack(ctx context.Context, sessionID string, req *dto.SubmitTechStackRequest) (*dto.WizardView, error) {
	rt := s.runtime(sessionID)
	rt.mu.Lock()

	var entered wizard.StepKind
	state, err := s.transition(ctx, sessionID, rt, wizard.KindTechStack, func(state *wizard.State) error {
		var err error
		entered, err = s.cfg.Flow.SubmitTechStack(state, wizard.TechStack{
			Frontend: strings.TrimSpace(req.Frontend),
			Backend:  strings.TrimSpace(req.Backend),
			Database: strings.TrimSpace(req.Database),
		})
		return err
	})
	if err != nil {
		rt.mu.Unlock()
		return nil, err
	}
	if entered != wizard.KindDisplay {
		defer rt.mu.Unlock()
		return s.view(state, rt), nil
	}
	return s.generate(ctx, sessionID, rt, state)
}

func (s *wizardService) SubmitTemplate(ctx context.Context, sessionID string, req *dto.SubmitTemplateRequest) (*dto.WizardView, error) {
	rt := s.runtime(sessionID)
	rt.mu.Lock()

	state, err := s.transition(ctx, sessionID, rt, wizard.KindStructureTemplate, func(state *wizard.State) error {
		_, err := s.cfg.Flow.SubmitTemplate(state, req.Template)
		return err
	})
	if err != nil {
		rt.mu.Unlock()
		return nil, err
	}
	return s.generate(ctx, sessionID, rt, state)
}

func (s *wizardService) Generate(ctx context.Context, sessionID string) (*dto.WizardView, error) {
	rt := s.runtime(sessionID)
	rt.mu.Lock()
	if rt.busy() {
		rt.mu.Unlock()
		return nil, ErrBusy
	}
	state, _ := s.repo.Load(ctx, sessionID)
	return s.generate(ctx, sessionID, rt, state)
}

// generate runs one document generation for a session sitting on the display
// step. It is entered with rt.mu held, in the same critical section that
// produced state, and releases the lock around the generator call.
func (s *wizardService) generate(ctx context.Context, sessionID string, rt *sessionRuntime, state wizard.State) (*dto.WizardView, error) {
	if err := s.cfg.Flow.BeginGeneration(&state); err != nil {
		rt.mu.Unlock()
		return nil, err
	}
	s.repo.Save(ctx, sessionID, state)
	rt.generating = true
	epoch := rt.epoch
	rt.mu.Unlock()

	in := brd.GenerateInput{
		ProblemStatement: state.ProblemStatement,
		ChosenSolution:   state.ChosenSolution,
		FrontendStack:    state.TechStack.Frontend,
		BackendStack:     state.TechStack.Backend,
		DatabaseStack:    state.TechStack.Database,
	}
	if s.cfg.Flow.TemplateStep {
		in.Template = state.DocumentTemplate
	}

	aiCtx, cancel := s.aiContext(ctx)
	started := time.Now()
	document, aiErr := s.generator.Generate(aiCtx, in)
	cancel()

	rt.mu.Lock()
	defer rt.mu.Unlock()

	// after a restart the flag belongs to whatever started since
	if rt.epoch != epoch {
		s.logger.Info("WizardService", "Discarding document for a restarted session", map[string]interface{}{
			"session_id": sessionID,
		})
		current, _ := s.repo.Load(ctx, sessionID)
		return s.view(current, rt), nil
	}
	rt.generating = false
	if current, moved := s.superseded(ctx, sessionID, state); moved {
		return s.view(current, rt), nil
	}

	var notice wizard.Notice
	if aiErr != nil {
		s.metrics.ObserveAIRequest("generate", metrics.OutcomeError, time.Since(started))
		s.logger.Error("WizardService", "Document generation failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      aiErr,
		})
		_ = s.cfg.Flow.FailGeneration(&state)
		notice = wizard.NoticeGenerateFailed
		s.publish(ctx, events.NewWizardEvent(events.BRDFailed, sessionID, map[string]interface{}{"error": aiErr.Error()}))
	} else {
		s.metrics.ObserveAIRequest("generate", metrics.OutcomeSuccess, time.Since(started))
		_ = s.cfg.Flow.CompleteGeneration(&state, document)
		notice = wizard.NoticeGenerated
		s.logger.Info("WizardService", "Document generated", map[string]interface{}{
			"session_id": sessionID,
			"length":     len(document),
		})
		s.publish(ctx, events.NewWizardEvent(events.BRDGenerated, sessionID, map[string]interface{}{"length": len(document)}))
	}
	s.repo.Save(ctx, sessionID, state)
	s.push(sessionID, notice)
	return s.view(state, rt, notice), nil
}

func (s *wizardService) EditContent(ctx context.Context, sessionID string, req *dto.EditContentRequest) (*dto.WizardView, error) {
	return s.mutate(ctx, sessionID, wizard.KindDisplay, func(state *wizard.State) error {
		return s.cfg.Flow.EditContent(state, req.Content)
	})
}

func (s *wizardService) GoBack(ctx context.Context, sessionID string) (*dto.WizardView, error) {
	rt := s.runtime(sessionID)
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.busy() {
		return nil, ErrBusy
	}
	state, _ := s.repo.Load(ctx, sessionID)
	if s.cfg.Flow.GoBack(&state) {
		s.repo.Save(ctx, sessionID, state)
	}
	return s.view(state, rt), nil
}

// Restart always succeeds, even while an AI call is running; that call's
// result is dropped when it returns.
func (s *wizardService) Restart(ctx context.Context, sessionID string) (*dto.WizardView, error) {
	rt := s.runtime(sessionID)
	rt.mu.Lock()
	rt.epoch++
	rt.suggesting = false
	rt.generating = false
	s.repo.Clear(ctx, sessionID)
	state := s.cfg.Flow.Restart()
	view := s.view(state, rt, wizard.NoticeRestarted)
	rt.mu.Unlock()

	s.logger.Info("WizardService", "Wizard restarted", map[string]interface{}{"session_id": sessionID})
	s.publish(ctx, events.NewWizardEvent(events.WizardRestarted, sessionID, nil))
	s.push(sessionID, wizard.NoticeRestarted)
	return view, nil
}

func (s *wizardService) Export(ctx context.Context, sessionID string, format string) (*dto.ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadRequest, "Unsupported export format. Use txt, md or docx.", err)
	}

	rt := s.runtime(sessionID)
	rt.mu.Lock()
	state, _ := s.repo.Load(ctx, sessionID)
	rt.mu.Unlock()

	file, err := export.Export(f, s.cfg.DocumentName, state.ExportText())
	if err != nil {
		if errors.Is(err, export.ErrEmptyDocument) {
			s.metrics.ObserveExport(string(f), metrics.OutcomeRejected)
			return nil, serverutils.NewAppError(fiber.StatusBadRequest, "There is no document to export yet.", err)
		}
		s.metrics.ObserveExport(string(f), metrics.OutcomeError)
		s.logger.Error("WizardService", "Export failed", map[string]interface{}{
			"session_id": sessionID,
			"format":     string(f),
			"error":      err,
		})
		notice := wizard.NoticeDocxFailed
		if f != export.FormatDOCX {
			notice = wizard.Notice{
				Title:       fmt.Sprintf("%s Download Error", f.Label()),
				Description: fmt.Sprintf("Failed to download %s. Try another format.", f.Label()),
				Variant:     wizard.NoticeDestructive,
			}
		}
		s.push(sessionID, notice)
		return nil, serverutils.NewAppError(fiber.StatusUnprocessableEntity, notice.Description, err)
	}

	s.metrics.ObserveExport(string(f), metrics.OutcomeSuccess)
	s.publish(ctx, events.NewWizardEvent(events.DocumentExported, sessionID, map[string]interface{}{
		"format": string(f),
		"bytes":  len(file.Data),
	}))
	s.push(sessionID, wizard.DownloadedNotice(f.Label(), file.Name))

	return &dto.ExportFile{
		FileName:    file.Name,
		ContentType: file.ContentType,
		Data:        file.Data,
	}, nil
}

// superseded reloads the snapshot after an AI call and reports whether it
// moved away from started, the state saved when the call began. The runtime
// epoch only covers this process; another instance sharing the store may have
// restarted or edited the session in the meantime.
func (s *wizardService) superseded(ctx context.Context, sessionID string, started wizard.State) (wizard.State, bool) {
	current, _ := s.repo.Load(ctx, sessionID)
	if current.Equal(started) {
		return current, false
	}
	s.logger.Info("WizardService", "Discarding AI result for a session changed elsewhere", map[string]interface{}{
		"session_id": sessionID,
		"step":       int(current.CurrentStep),
	})
	return current, true
}

// aiContext bounds an AI call by the configured timeout. The call is not tied
// to the client's connection: once issued it runs to completion.
func (s *wizardService) aiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if s.cfg.AITimeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, s.cfg.AITimeout)
}

func (s *wizardService) publish(ctx context.Context, evt events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn("WizardService", "Failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *wizardService) push(sessionID string, notice wizard.Notice) {
	if s.notices != nil {
		s.notices.SendNotice(sessionID, notice)
	}
}
