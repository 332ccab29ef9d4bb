// Package core defines the contracts shared by every other agentpipe package:
// the ToolResult record produced by tools, the CompositeResult assembled by
// sequential and parallel composites, the Agent / Composite interfaces, the
// per-run RunContext, conversational Sessions and the error taxonomy.
//
// Keeping these in one dependency-free package lets agents, tools, the
// session layer and renderers interoperate without import cycles.
package core
