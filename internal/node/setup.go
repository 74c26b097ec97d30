package node

import (
	"context"
	"fmt"
)

// SetupOptions names the resources Setup creates.
type SetupOptions struct {
	NodeName        string
	Namespace       string
	ButtonTopic     string
	LEDTopic        string
	ExecutorHandles int

	// OnMessage is registered for LEDTopic in the final step.
	OnMessage MessageHandler
}

// Handle is the set of middleware resources held for the process lifetime.
// It is created once by Setup and never recreated.
type Handle struct {
	Publisher    Publisher
	Subscription Subscription
	Executor     Executor
}

// Setup creates the middleware resources in their fixed order:
//
//	context → node → publisher → subscription → executor → register
//
// Each step needs the previous one, so the chain stops at the first failure
// and returns a *SetupError naming that step. Nothing is rolled back; a
// partially initialised middleware is left for the watchdog reset.
func Setup(ctx context.Context, mw Middleware, opts SetupOptions) (*Handle, error) {
	if opts.OnMessage == nil {
		return nil, &SetupError{Step: StepRegister, Err: fmt.Errorf("%w: message handler", ErrMissingDependency)}
	}

	if err := mw.Init(ctx); err != nil {
		return nil, &SetupError{Step: StepContext, Err: err}
	}

	if err := mw.CreateNode(ctx, opts.NodeName, opts.Namespace); err != nil {
		return nil, &SetupError{Step: StepNode, Err: err}
	}

	pub, err := mw.CreatePublisher(ctx, opts.ButtonTopic)
	if err != nil {
		return nil, &SetupError{Step: StepPublisher, Err: err}
	}

	sub, err := mw.CreateSubscription(ctx, opts.LEDTopic)
	if err != nil {
		return nil, &SetupError{Step: StepSubscription, Err: err}
	}

	exec, err := mw.CreateExecutor(ctx, opts.ExecutorHandles)
	if err != nil {
		return nil, &SetupError{Step: StepExecutor, Err: err}
	}

	if err := exec.AddSubscription(sub, opts.OnMessage); err != nil {
		return nil, &SetupError{Step: StepRegister, Err: err}
	}

	return &Handle{
		Publisher:    pub,
		Subscription: sub,
		Executor:     exec,
	}, nil
}
