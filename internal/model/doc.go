// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// # Key Types
//
//   - ChatSession: one conversation thread with title and timestamps
//   - Message: a single user or bot message, append-only once created
//   - Sender: who wrote a message (user or bot)
//
// # Invariants
//
// Messages are kept in insertion order and never edited. UpdatedAt moves
// forward on every append. The title stays "New Chat" until the first user
// message arrives and is derived exactly once from it.
//
// # Usage
//
//	sess := model.NewChatSession(time.Now())
//	sess.Append(model.NewUserMessage("Apa itu kurikulum TI?"), time.Now())
//	fmt.Println(sess.Title)
package model
