// Package program drives a message-driven state-update loop with effect
// commands.
//
// An application supplies two pure functions:
//
//	init:   func() (S, command.Cmd[M])
//	update: func(M, S) (S, command.Cmd[M])
//
// The program owns the single current state. Every message arriving through
// the dispatcher replaces it with the state update returns, strictly one
// message at a time, in arrival order, never concurrently. All waiting
// happens inside effect executors started by commands; update itself must
// return synchronously.
//
// # Dispatcher
//
// Program.Dispatch is the one capability by which an effect re-enters the
// loop. It is safe to call from arbitrarily many goroutines and never
// blocks: messages dispatched while an update is in flight queue up and are
// processed after it, in order.
//
// # Commands and subscriptions
//
// Commands (package command) describe one-shot pending effects; the loop
// starts them after each commit and forgets them. Subscriptions (package
// subscription) describe long-lived effects derived from state; the loop
// diffs the wanted set against the running set after each commit, starting
// and stopping by subscription id.
//
// # Failure
//
// Recoverable failure travels as data in messages; nothing may bypass the
// message channel to alter state. A panic escaping update is fatal and
// re-raised. A panic inside an effect executor is recovered and logged.
//
// Example:
//
//	p := program.New(initFn, updateFn,
//	    program.WithObserver[State, Msg](render),
//	    program.WithLogger[State, Msg](logger),
//	)
//	err := p.Run(ctx)
package program
