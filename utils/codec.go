package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"done/models"
)

const taskListSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tasks", "nextIdNumber"],
  "properties": {
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "description", "completed"],
        "properties": {
          "id": {"type": "integer", "minimum": 0},
          "description": {"type": "string"},
          "completed": {"type": "boolean"}
        }
      }
    },
    "nextIdNumber": {"type": "integer", "minimum": 0}
  }
}`

var schema = jsonschema.MustCompileString("tasklist.schema.json", taskListSchema)

// Encode serializes list in the stored layout. A nil task slice is written
// as an empty array.
func Encode(list models.TaskList) ([]byte, error) {
	if list.Tasks == nil {
		list.Tasks = []models.Task{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode task list: %w", err)
	}
	return data, nil
}

// Decode parses a stored value. Anything that is not a well-formed task list
// with distinct ids yields an error wrapping ErrCorrupt.
func Decode(data []byte) (models.TaskList, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return models.TaskList{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := schema.Validate(doc); err != nil {
		return models.TaskList{}, fmt.Errorf("%w: %s", ErrCorrupt, schemaMessage(err))
	}

	var list models.TaskList
	if err := json.Unmarshal(data, &list); err != nil {
		return models.TaskList{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if list.NextID == math.MaxInt {
		return models.TaskList{}, fmt.Errorf("%w: nextIdNumber %d leaves no ids to issue", ErrCorrupt, list.NextID)
	}
	seen := make(map[int]bool, len(list.Tasks))
	for _, task := range list.Tasks {
		if task.ID == math.MaxInt {
			return models.TaskList{}, fmt.Errorf("%w: task id %d leaves no ids to issue", ErrCorrupt, task.ID)
		}
		if seen[task.ID] {
			return models.TaskList{}, fmt.Errorf("%w: duplicate task id %d", ErrCorrupt, task.ID)
		}
		seen[task.ID] = true
	}
	return list, nil
}

// schemaMessage reduces a validation error to its first leaf cause.
func schemaMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", ve.InstanceLocation, ve.Message)
}
