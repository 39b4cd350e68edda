// Package navigation turns notification deep links into role-correct,
// de-duplicated navigation commands.
//
// The Bus is an explicit in-process publish/subscribe point: producers call
// RequestNavigation with a Target, the Bus rewrites the route for the acting
// role, and consumers receive the resulting Event. History pushes go through
// an injected Navigator so the Bus itself never touches a view layer.
package navigation
