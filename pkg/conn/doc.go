/*
Package conn manages connection-profile parsing for goretriever.

	            +-------------+
	            |   Profile   |
	            | (Engine +   |
	            |  Connection)|
	            +------+------+
	                   |
	    +--------------+--------------+
	    |              |              |
	+---+----+    +----+---+    +----+----+
	| conn_  |    |  YAML  |    |   HCL   |
	| file   |    | Parser |    | Parser  |
	+--------+    +--------+    +---------+

🎯 Purpose:
- Parses the legacy conn_file key-value format
- Supports YAML and HCL connection profiles
- Validates profile values before any subprocess runs

🔄 Flow:
1. Reads the profile from file
2. Picks the parser by file extension
3. Validates the engine name and connection fields
4. Hands the validated profile to the retriever client

🤝 Interfaces:
- Parser: format-specific parsing, registered at init time
*/
package conn
