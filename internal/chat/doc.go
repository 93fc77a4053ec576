// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat runs the send-message lifecycle.
//
// A Controller takes a user's text, appends it to the session, asks the
// answer service, times the round trip, appends the answer and hands the
// finished exchange to the history service in the background.
//
// # States
//
// Each session moves through
//
//	Idle -> Sending -> AwaitingAnswer -> Rendering -> Idle
//	                   AwaitingAnswer -> Failed    -> Idle
//
// Only one request may be outstanding per session; a second Send on a busy
// session returns ErrBusy. Different sessions are independent.
//
// # Failure Handling
//
//   - blank text is skipped without an error
//   - the user's message is never rolled back
//   - an answer failure appends nothing, raises an error notice and returns
//     an error wrapping ErrAnswerFailed
//   - a history failure only affects its ForwardTask
//
// # Usage
//
//	ctrl, err := chat.New(chat.Options{Store: store, Answers: client, Auth: snap})
//	out, err := ctrl.Send(ctx, store.ActiveID(), "Kapan UTS?")
package chat
