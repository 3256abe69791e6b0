/*
Package runner locates and spawns the external retriever binary.

	+----------+     argv      +-----------+
	|  Client  | ------------> |  Runner   |
	| (pkg/    |               | (exec or  |
	| retriever)| <----------- |  fake)    |
	+----------+    Result     +-----------+

🎯 Purpose:
- Finds the executable (RETRIEVER_PATH, PATH, conventional locations)
- Runs it as a blocking subprocess with context cancellation
- Captures stdout/stderr and optionally tees them into a log file

📝 Design Philosophy:
All of goretriever's features end in one call through this package. There
is deliberately no retry or recovery here: the retriever's exit status and
stderr are wrapped into the returned error and propagate unchanged.
*/
package runner
