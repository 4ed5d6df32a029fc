// Package diagram is the editable model behind the command stack.
//
// A Canvas holds shapes, connections and labels. Every change goes through
// a command handler registered on a command.Stack, so each edit can be
// undone. Behaviors compose follow-up commands through the interceptor:
// moving a shape moves its label and re-lays out attached connections,
// deleting a shape deletes what hangs off it. Rules answer canExecute.
//
// Modeling is the facade used by the application and by scripts.
package diagram
