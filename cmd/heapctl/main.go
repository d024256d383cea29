// Command heapctl exercises heapkit arenas from the command line.
package main

func main() {
	execute()
}
