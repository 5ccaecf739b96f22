// Package batch runs one fresh pipeline per input document, several at a
// time.
//
// Each Job is turned into a pipeline by a Factory, processed and destroyed
// whatever the outcome. Results come back in job order:
//
//	r := batch.NewRunner(batch.Config{Concurrency: 4}, func(j batch.Job) (*pipeline.Pipeline, error) {
//		p := pipeline.New()
//		up, err := steps.Uppercase(j.Config.TargetLanguage)
//		if err != nil {
//			return nil, err
//		}
//		return p, p.AddSteps(steps.NewTextSource(), up, steps.NewTextSink())
//	})
//	results, err := r.Run(ctx, jobs)
package batch
