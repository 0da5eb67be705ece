package api

import (
	"github.com/initra/procflow/internal/attachments"
	"github.com/initra/procflow/internal/documents"
	"github.com/initra/procflow/internal/requisitions"
	"github.com/initra/procflow/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents    documents.System
	Requisitions requisitions.System
	Attachments  attachments.System
}

// NewDomain creates all domain systems from the API runtime. The workflow
// engine is shared: documents apply transitions through it, and requisitions
// register split purchase orders through the documents system.
func NewDomain(runtime *Runtime) *Domain {
	engine := workflow.NewEngine(runtime.Logger)

	docsSystem := documents.New(
		runtime.Database.Connection(),
		engine,
		runtime.Logger,
		runtime.Pagination,
	)

	requisitionsSystem := requisitions.New(
		runtime.Database.Connection(),
		docsSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	attachmentsSystem := attachments.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Documents:    docsSystem,
		Requisitions: requisitionsSystem,
		Attachments:  attachmentsSystem,
	}
}
