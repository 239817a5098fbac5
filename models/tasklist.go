package models

import "math"

// NewTaskList returns an empty list whose first task will get id 0.
func NewTaskList() TaskList {
	return TaskList{Tasks: []Task{}, NextID: 0}
}

// Reconcile turns the result of a storage read into the list a session starts
// with. A nil input means nothing was stored. A stored counter that does not
// exceed every stored id is raised so ids are never reissued.
func Reconcile(loaded *TaskList) TaskList {
	if loaded == nil {
		return NewTaskList()
	}
	list := loaded.Clone()
	for _, task := range list.Tasks {
		if task.ID == math.MaxInt {
			// No id is left above it; callers see an exhausted counter.
			list.NextID = math.MaxInt
			break
		}
		if task.ID >= list.NextID {
			list.NextID = task.ID + 1
		}
	}
	if list.NextID < 0 {
		list.NextID = 0
	}
	return list
}

// Clone returns a deep copy. Tasks is never nil in the copy.
func (l TaskList) Clone() TaskList {
	tasks := make([]Task, len(l.Tasks))
	copy(tasks, l.Tasks)
	return TaskList{Tasks: tasks, NextID: l.NextID}
}

// Add appends a new incomplete task and advances the counter.
func (l *TaskList) Add(description string) Task {
	task := Task{
		ID:          l.NextID,
		Description: description,
		Completed:   false,
	}
	l.Tasks = append(l.Tasks, task)
	l.NextID++
	return task
}

// Toggle flips the completed flag of the task with the given id.
// It reports whether such a task existed.
func (l *TaskList) Toggle(id int) bool {
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			l.Tasks[i].Completed = !l.Tasks[i].Completed
			return true
		}
	}
	return false
}

// Delete removes the task with the given id, keeping the others in order.
// It reports whether a task was removed.
func (l *TaskList) Delete(id int) bool {
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			tasks := make([]Task, 0, len(l.Tasks)-1)
			tasks = append(tasks, l.Tasks[:i]...)
			tasks = append(tasks, l.Tasks[i+1:]...)
			l.Tasks = tasks
			return true
		}
	}
	return false
}

// Find returns the task with the given id.
func (l TaskList) Find(id int) (Task, bool) {
	for _, task := range l.Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return Task{}, false
}
