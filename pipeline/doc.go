// Package pipeline drives a document through a Source step, zero or more
// Transform steps and a Sink step.
//
// A Pipeline is built empty, steps are appended in execution order, Process
// runs one document and Destroy releases every step. The driver pulls one
// event at a time from the source, passes it through each transform in turn
// and writes whatever comes out to the sink. Nothing runs concurrently inside
// a run; separate Pipeline values may run in parallel.
//
// # State machine
//
//	Idle -> Running -> {Completed, Failed} -> Destroyed
//
// A pipeline may run again from Completed or Failed only when every step
// implements Resetter. Otherwise build a fresh pipeline per document, which
// is what RunDocument does.
//
// # Usage
//
//	err := pipeline.RunDocument(ctx, func(p *pipeline.Pipeline) error {
//	    up, err := steps.Uppercase(cfg.TargetLanguage)
//	    if err != nil {
//	        return err
//	    }
//	    return p.AddSteps(steps.NewTextSource(), up, steps.NewTextSink())
//	}, cfg.Document("in.txt"), cfg)
package pipeline
