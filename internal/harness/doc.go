// Package harness provides conformance testing for domain compilation.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	dialect: sqlite              # optional, default sqlserver
//	catalog:                     # inline catalog, same format as catalog files
//	  models:
//	    - name: users
//	      columns:
//	        - {name: ID, type: int, primary_key: true}
//	        - {name: Name, type: string, nullable: true}
//	model: users
//	domain:
//	  - "|"
//	  - [Name, "=", henka]
//	  - [ID, "in", [10, 13, 2]]
//	seed:                        # optional, sqlite only
//	  - "CREATE TABLE users (ID INTEGER PRIMARY KEY, Name TEXT)"
//	expect:
//	  sql: "SELECT * FROM [users] WHERE ..."
//	  params: [pName=henka, pID1=10, pID2=13, pID3=2]
//	  hint: unknown
//	  rows: [1, 2]               # optional, requires seed
//
// A scenario expecting a failure sets expect.error to a domain error code
// such as UNKNOWN_COLUMN instead of sql and params.
//
// Operators must be quoted: "&", "|" and "!" are YAML indicators.
//
// # Seeded Scenarios
//
// When seed is present the compiled query runs against a fresh in-memory
// SQLite database and the key column (expect.key, default ID) of every
// matched row is compared with expect.rows. This checks the NULL handling
// of the generated SQL, not only its text.
//
// # Golden Files
//
// RunWithGolden snapshots the SQL, parameters, hint and rows of a scenario
// into testdata/golden/{name}.golden.
package harness
