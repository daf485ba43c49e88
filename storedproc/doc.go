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

// Package storedproc calls database stored procedures over the connection a
// unit of work owns and maps their result sets onto Go values with bun's
// scanner.
//
// MySQL procedures are invoked with CALL and positional arguments in the order
// they were added. PostgreSQL set-returning functions are queried with
// SELECT * FROM and named notation; Execute uses CALL with named notation.
// SQLite has no stored procedures.
package storedproc
