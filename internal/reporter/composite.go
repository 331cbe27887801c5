package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter. Nil entries are
// skipped.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	c := &CompositeReporter{}
	for _, r := range reporters {
		if r != nil {
			c.reporters = append(c.reporters, r)
		}
	}
	return c
}

func (c *CompositeReporter) each(fn func(Reporter)) {
	for _, r := range c.reporters {
		fn(r)
	}
}

func (c *CompositeReporter) Hardware(summary HardwareSummary) {
	c.each(func(r Reporter) { r.Hardware(summary) })
}

func (c *CompositeReporter) Initialization(summary InitializationSummary) {
	c.each(func(r Reporter) { r.Initialization(summary) })
}

func (c *CompositeReporter) StageProgress(update StageProgress) {
	c.each(func(r Reporter) { r.StageProgress(update) })
}

func (c *CompositeReporter) CropResult(summary CropSummary) {
	c.each(func(r Reporter) { r.CropResult(summary) })
}

func (c *CompositeReporter) AnalysisConfig(summary AnalysisConfigSummary) {
	c.each(func(r Reporter) { r.AnalysisConfig(summary) })
}

func (c *CompositeReporter) AnalysisStarted(totalFrames uint64) {
	c.each(func(r Reporter) { r.AnalysisStarted(totalFrames) })
}

func (c *CompositeReporter) AnalysisProgress(progress ProgressSnapshot) {
	c.each(func(r Reporter) { r.AnalysisProgress(progress) })
}

func (c *CompositeReporter) ValidationComplete(summary ValidationSummary) {
	c.each(func(r Reporter) { r.ValidationComplete(summary) })
}

func (c *CompositeReporter) AnalysisComplete(summary AnalysisOutcome) {
	c.each(func(r Reporter) { r.AnalysisComplete(summary) })
}

func (c *CompositeReporter) Warning(message string) {
	c.each(func(r Reporter) { r.Warning(message) })
}

func (c *CompositeReporter) Error(err ReporterError) {
	c.each(func(r Reporter) { r.Error(err) })
}

func (c *CompositeReporter) OperationComplete(message string) {
	c.each(func(r Reporter) { r.OperationComplete(message) })
}

func (c *CompositeReporter) BatchStarted(info BatchStartInfo) {
	c.each(func(r Reporter) { r.BatchStarted(info) })
}

func (c *CompositeReporter) FileProgress(context FileProgressContext) {
	c.each(func(r Reporter) { r.FileProgress(context) })
}

func (c *CompositeReporter) BatchComplete(summary BatchSummary) {
	c.each(func(r Reporter) { r.BatchComplete(summary) })
}

func (c *CompositeReporter) Verbose(message string) {
	c.each(func(r Reporter) { r.Verbose(message) })
}
