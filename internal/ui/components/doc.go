// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces for the catty TUI.
//
// Toasts appear in the bottom-right corner and auto-dismiss, so the user can
// keep typing while a notification is visible.
//
// # Key Types
//
//   - Toast: One notification with kind, title and message
//   - ToastManager: Thread-safe list of visible toasts
//
// # Usage
//
//	toasts := components.NewToastManager()
//	toasts.Add(components.NewToast(components.ToastKindSuccess, "Chat saved", "", time.Now()))
//	view := components.RenderToastStack(toasts.Toasts(), width)
package components
