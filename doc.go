// Package authcore is the authentication and session-management core for
// account-holding applications: credential registration, password login with
// a constant-time floor and per-identifier attempt budgeting, federated
// (Google/Apple) login, device-delegated biometric login, signed access
// tokens with one-shot refresh rotation, multi-device session tracking, and
// code-based password reset.
//
// The package exposes a function-call contract, not a wire protocol. An
// [Engine] is built once per process through [New]:
//
//	engine, err := authcore.New().
//		WithConfig(cfg).
//		WithSecureStore(store).
//		WithMailer(mailer).
//		Build()
//
// State lives behind narrow per-entity repositories (users, sessions,
// refresh records, reset tickets, failed-attempt counters). In-memory
// implementations are the default; attaching a Redis client with
// [Builder.WithRedis] moves the TTL-natural entities to Redis without
// changing any observable behavior.
//
// Errors fall into three categories: [ValidationError] for input the caller
// can correct, [AuthError] for authentication and session failures, and
// [RateLimitError] for temporary lockouts. Login failures deliberately share
// one generic message so response content cannot reveal whether an account
// exists, and the whole password-login path is held to a minimum duration so
// response timing cannot either.
package authcore
