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

// Package database owns the bun connection: driver and dialect selection for
// mysql, postgres and sqlite, pool settings and environment overrides, query
// hooks, table creation for registered models, foreign keys, seed SQL files,
// SQL error classification, health checks, and the structured logger the
// rest of the module writes through.
package database
