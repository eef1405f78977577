package core

import (
	"errors"
)

var (
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	ErrUnknown          = errors.New("unknown")

	// Asset manager
	ErrAssetNotFound      = errors.New("asset not found")
	ErrAssetAlreadyExists = errors.New("asset already imported")
	ErrUnknownExtension   = errors.New("no registered asset type for extension")
	ErrMissingParent      = errors.New("embedded asset has no existing parent")
	ErrDuplicateType      = errors.New("asset type already registered")
	ErrNotInitialized     = errors.New("not initialized")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrAssetNotLoaded     = errors.New("asset not loaded")
	ErrNoGPUBackend       = errors.New("no gpu backend wired into asset manager")

	// Handle pools / resource manager
	ErrPoolExhausted = errors.New("handle pool exhausted")
	ErrHandleStale   = errors.New("stale handle")

	// Render graph
	ErrGraphNotCompiled  = errors.New("render graph not compiled")
	ErrGraphCycle        = errors.New("render graph has a dependency cycle")
	ErrUnknownAttachment = errors.New("unknown attachment name")
)
