// Package task runs one command for one project.
//
// A ProjectTask resolves the command's script (package.json first, then the
// manifest), decides from the incremental build record whether any work is
// needed, and otherwise spawns the script as a single child process in the
// project directory. A record is written only after the process exits with
// status zero, so a failed or interrupted run is always retried.
package task
