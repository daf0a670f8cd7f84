// Package domain contains the core entities of the task API: users, the tasks
// they own, task priorities and partial task updates. It has no knowledge of
// persistence or HTTP.
package domain
