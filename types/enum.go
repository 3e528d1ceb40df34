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

package types

// Fallbacks reported by enums for values outside their declared range.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum is the contract of integer-backed enums. String returns the
// SQL or wire form, Name the lowercase identifier, Desc a human readable
// summary. Out-of-range values report the Illegal* fallbacks.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Name() string
	Desc() string
}
