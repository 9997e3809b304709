package core

// Policy picks exploratory actions while a Trainer fills a QTable. It works
// on dense indices; the trainer owns the table and the Bellman update.
type Policy interface {
	ResetEpisode(*EpisodeContext)
	UpdateEpisode(*EpisodeContext)
	PickAction(*StepContext, int, *QTable) int
	Reset()
}

type PolicyConstructor interface {
	NewPolicy() Policy
}

// Validator is implemented by policies whose hyperparameters can be out of
// range. Trainers call it on construction.
type Validator interface {
	Validate() error
}

// FixedPolicy maps states to actions without learning. It is what the
// evaluator rolls out.
type FixedPolicy interface {
	Act(*StepContext, State) (Action, error)
}
