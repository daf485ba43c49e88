/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package storedproc

// Param is one named procedure argument.
type Param struct {
	Name  string
	Value interface{}
}

// Params is an ordered list of named arguments. A nil *Params is an empty list.
type Params struct {
	items []Param
}

func NewParams() *Params {
	return &Params{}
}

// Add appends a named argument and returns p for chaining.
func (p *Params) Add(name string, value interface{}) *Params {
	p.items = append(p.items, Param{Name: name, Value: value})
	return p
}

func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

func (p *Params) Items() []Param {
	if p == nil {
		return nil
	}
	out := make([]Param, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Params) Values() []interface{} {
	values := make([]interface{}, 0, p.Len())
	for _, item := range p.Items() {
		values = append(values, item.Value)
	}
	return values
}
