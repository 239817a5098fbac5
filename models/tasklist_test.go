package models_test

import (
	"math"
	"reflect"
	"testing"

	"done/models"
)

func TestReconcile_Nil(t *testing.T) {
	got := models.Reconcile(nil)
	if got.NextID != 0 {
		t.Errorf("expected nextId 0, got %d", got.NextID)
	}
	if got.Tasks == nil || len(got.Tasks) != 0 {
		t.Errorf("expected empty non-nil tasks, got %#v", got.Tasks)
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name   string
		loaded models.TaskList
		want   int
	}{
		{
			name:   "counter ahead of ids",
			loaded: models.TaskList{Tasks: []models.Task{{ID: 0}, {ID: 3}}, NextID: 7},
			want:   7,
		},
		{
			name:   "counter equal to max id",
			loaded: models.TaskList{Tasks: []models.Task{{ID: 0}, {ID: 3}}, NextID: 3},
			want:   4,
		},
		{
			name:   "empty list keeps counter",
			loaded: models.TaskList{NextID: 5},
			want:   5,
		},
		{
			name:   "largest possible id",
			loaded: models.TaskList{Tasks: []models.Task{{ID: 0}, {ID: math.MaxInt}}, NextID: 0},
			want:   math.MaxInt,
		},
		{
			name:   "negative counter",
			loaded: models.TaskList{NextID: -2},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.Reconcile(&tt.loaded)
			if got.NextID != tt.want {
				t.Errorf("expected nextId %d, got %d", tt.want, got.NextID)
			}
			if len(got.Tasks) != len(tt.loaded.Tasks) {
				t.Errorf("expected %d tasks, got %d", len(tt.loaded.Tasks), len(got.Tasks))
			}
		})
	}
}

func TestReconcile_DoesNotAlias(t *testing.T) {
	loaded := models.TaskList{Tasks: []models.Task{{ID: 0, Description: "a"}}, NextID: 1}
	got := models.Reconcile(&loaded)
	got.Tasks[0].Description = "changed"
	if loaded.Tasks[0].Description != "a" {
		t.Errorf("reconcile result shares storage with its input")
	}
}

func TestAdd_IdsStrictlyIncrease(t *testing.T) {
	list := models.NewTaskList()
	prev := -1
	for i := 0; i < 50; i++ {
		task := list.Add("task")
		if task.ID <= prev {
			t.Fatalf("expected id greater than %d, got %d", prev, task.ID)
		}
		prev = task.ID
	}
	if list.NextID != 50 {
		t.Errorf("expected nextId 50, got %d", list.NextID)
	}
}

func TestAdd_DoesNotReuseDeletedId(t *testing.T) {
	list := models.NewTaskList()
	list.Add("a")
	second := list.Add("b")
	list.Delete(second.ID)

	third := list.Add("c")
	if third.ID == second.ID {
		t.Errorf("id %d was reissued after deletion", third.ID)
	}
	if third.ID != 2 {
		t.Errorf("expected id 2, got %d", third.ID)
	}
}

func TestToggle_Involution(t *testing.T) {
	list := models.NewTaskList()
	list.Add("a")
	list.Add("b")
	before := list.Clone()

	if !list.Toggle(1) {
		t.Fatal("expected toggle to find task 1")
	}
	if !list.Tasks[1].Completed {
		t.Error("expected task 1 completed after one toggle")
	}
	list.Toggle(1)

	if !reflect.DeepEqual(before, list) {
		t.Errorf("expected %+v, got %+v", before, list)
	}
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	list := models.NewTaskList()
	list.Add("a")
	list.Add("b")
	list.Add("c")
	list.Toggle(2)

	if !list.Delete(1) {
		t.Fatal("expected delete to find task 1")
	}

	want := []models.Task{
		{ID: 0, Description: "a"},
		{ID: 2, Description: "c", Completed: true},
	}
	if !reflect.DeepEqual(list.Tasks, want) {
		t.Errorf("expected %+v, got %+v", want, list.Tasks)
	}
	if _, ok := list.Find(1); ok {
		t.Error("task 1 still present")
	}
}

func TestMissingId_NoOp(t *testing.T) {
	list := models.NewTaskList()
	list.Add("a")
	before := list.Clone()

	if list.Toggle(999) {
		t.Error("toggle reported a match for a missing id")
	}
	if list.Delete(999) {
		t.Error("delete reported a match for a missing id")
	}
	if !reflect.DeepEqual(before, list) {
		t.Errorf("expected %+v, got %+v", before, list)
	}
}
