// Package tools defines the function-tool contracts the driver can surface
// to the model alongside the computer-use tool.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - run_command: shell access to the desktop container.
//   - Tool failures are returned to the model as ToolError JSON, never raised.
package tools
