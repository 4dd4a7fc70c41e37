// Command planflow runs, validates and serves PlanX flows.
package main

func main() {
	Execute()
}
