// Command lendingreport prints lending analytics of a library database as JSON.
//
// Usage:
//
//	lendingreport -config lending.yaml -report most-loaned -limit 10
//	lendingreport -report most-active -from 2024-01-01 -to 2024-02-01
//	lendingreport -report pace -patron 42
//	lendingreport -report pace-leaderboard -limit 20
//	lendingreport -report associated -book 7 -limit 5
//	lendingreport -report all -patron 42 -book 7
//	lendingreport -warm
//
// With -warm the command keeps running, refreshes the result cache on cache.warm_schedule and
// serves Prometheus metrics on observability.prometheus_addr when configured.
//
// A .env file in the working directory is loaded before the configuration, so LENDING_*
// variables can be kept there.
package main
